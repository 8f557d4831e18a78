package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	UserKey      ContextKey = "user"
	TenantIDKey  ContextKey = "tenant_id"
	SubjectKey   ContextKey = "subject"
	RequestStart ContextKey = "request_start"
	ParamsKey    ContextKey = "params"
)

// Validate is the shared validator instance used by request DTOs.
var Validate = validator.New()
