package rtdbridge

// 版本信息，发布构建时通过 -ldflags 注入
var (
	// Version 版本号
	Version = "0.1.0"

	// GitCommit 构建所用的提交
	GitCommit = ""

	// BuildDate 构建时间
	BuildDate = ""
)
