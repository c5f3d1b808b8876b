package extractor

import "errors"

var (
	errNoJSONObject   = errors.New("no JSON object found in response")
	errUnbalancedJSON = errors.New("unbalanced JSON object in response")
)
