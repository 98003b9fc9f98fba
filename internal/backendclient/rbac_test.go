package backendclient

import "testing"

func TestCheckRBACAllowsMatchingWildcard(t *testing.T) {
	allow := parseAllowList([]string{"GET /patients/*"})
	deny := parseAllowList(nil)
	if !checkRBAC(allow, deny, "GET", "/patients/123") {
		t.Error("expected allowed")
	}
}

func TestCheckRBACRejectsUnlistedEndpoint(t *testing.T) {
	allow := parseAllowList([]string{"GET /patients/*"})
	deny := parseAllowList(nil)
	if checkRBAC(allow, deny, "DELETE", "/patients/123") {
		t.Error("expected rejected")
	}
}

func TestCheckRBACDenyListTakesPrecedence(t *testing.T) {
	allow := parseAllowList([]string{"POST /patients"})
	deny := parseAllowList([]string{"POST /patients"})
	if checkRBAC(allow, deny, "POST", "/patients") {
		t.Error("expected deny-list to override allow-list")
	}
}

func TestCheckRBACIsCaseInsensitiveOnMethod(t *testing.T) {
	allow := parseAllowList([]string{"get /departments"})
	deny := parseAllowList(nil)
	if !checkRBAC(allow, deny, "GET", "/departments") {
		t.Error("expected method match regardless of case")
	}
}

func TestMatchesPatternRejectsDifferentSegmentCount(t *testing.T) {
	if matchesPattern("/patients/1/visits", "/patients/*") {
		t.Error("expected segment-count mismatch to reject")
	}
}
