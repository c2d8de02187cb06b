package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a parameter value that matched a SQL
// injection fingerprint.
type InjectionCheckResult struct {
	ParamName   string
	Fingerprint string
}

// checkParamInjection screens every string parameter value with
// libinjection. Numbers, booleans, and other scalar types cannot carry
// injection payloads and are skipped. Returns the first hit, or nil when
// all values are clean.
func checkParamInjection(params map[string]any) *InjectionCheckResult {
	for name, value := range params {
		strValue, ok := value.(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(strValue); isSQLi {
			return &InjectionCheckResult{
				ParamName:   name,
				Fingerprint: string(fingerprint),
			}
		}
	}
	return nil
}
