package constants

import "github.com/go-playground/validator/v10"

type ContextKey string

const (
	AppKey      ContextKey = "app"
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	TenantIDKey ContextKey = "tenantID"
	LoggerKey   ContextKey = "logger"
)

// Validate is the shared validator instance used by DTO validation.
var Validate = validator.New()
