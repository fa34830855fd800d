package scripts

import "regexp"

// The recognized call shapes. Three read calls bind their assignment target
// to a record type; two mutation calls bind their map/payload argument.
var (
	reFetchByID = regexp.MustCompile(`(?i)(\w+)\s*=\s*zoho\.crm\.getRecordById\(\s*"(\w+)"`)
	reSearch    = regexp.MustCompile(`(?i)(\w+)\s*=\s*zoho\.crm\.searchRecords\(\s*"(\w+)"`)
	reRelated   = regexp.MustCompile(`(?i)(\w+)\s*=\s*zoho\.crm\.getRelatedRecords\(\s*"(\w+)"`)

	reUpdateByID = regexp.MustCompile(`(?i)zoho\.crm\.updateRecord\(\s*"(\w+)"\s*,\s*(\w+)\s*,\s*(\w+)`)
	reCreate     = regexp.MustCompile(`(?i)zoho\.crm\.createRecord\(\s*"(\w+)"\s*,\s*(\w+)`)

	// for each X in Y propagates Y's record binding to X.
	reForEach = regexp.MustCompile(`for\s+each\s+(\w+)\s+in\s+(\w+)`)

	// The two scan patterns, matched independent of control flow.
	reDotGet = regexp.MustCompile(`(\w+)\.get\(\s*"(\w+)"\s*\)`)
	reDotPut = regexp.MustCompile(`(\w+)\.put\(\s*"(\w+)"\s*,`)
)
