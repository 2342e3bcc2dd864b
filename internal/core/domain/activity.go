package domain

import "time"

// Auth activity kinds recorded in the audit trail.
const (
	ActivityRegister    = "register"
	ActivityLogin       = "login"
	ActivityLoginFailed = "login_failed"
	ActivityJoin        = "join"
	ActivityRefresh     = "refresh"
)

// AuthActivity is a single auth audit event. Recording is best-effort and
// never blocks or fails the request that produced it.
type AuthActivity struct {
	Kind      string
	AccountID string
	FamilyID  string
	Handle    string
	ClientIP  string
	Timestamp time.Time
}
