package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	SummaryKeyPrefix      = "ut:"           // cached user_totals aggregate
	SummaryCacheTTL       = 5 * time.Minute // staleness window for summary reads
	ReactivateTokenLength = 32              // length of account reactivation token

	ApprovalValidity  = 365 * 24 * time.Hour // legal entity approval is valid for one year
	CreditReuseWindow = 30 * 24 * time.Hour  // trailing window for the credit-reuse filters

	DocumentSlots           = 13 // upload slots on every account
	IndividualFirstDocument = 12 // individuals only need slots 12 and 13

	ShortNameLength  = 20
	MediumNameLength = 42

	BioMaxLength      = 140
	PasswordMinLength = 6

	HealthCheckServerAddr = ":3001" // health check server address
)
