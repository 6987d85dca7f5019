package consts

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	DefaultLatest   = 5
)

const (
	// ProcessingSuffix 对账任务处理中的脏集合后缀
	ProcessingSuffix = ":processing"
)
