package handler

type ContextKey string

var (
	AdminCtxKey    ContextKey = "admin"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	CategoryCtx    ContextKey = "category"
	RecordCtx      ContextKey = "record"
	BulkSessionCtx ContextKey = "bulkSession"
)
