package common

const (
	// 服务日志子模块名
	SubModName = "server"

	// 调用方可通过该header透传log id
	HeaderLogId = "X-Log-Id"

	// 请求体上限
	ReqBodyLimit = 1 << 20
)
