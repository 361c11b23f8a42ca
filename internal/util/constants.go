package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
	MimePNG   = "image/png"

	MaxIconSize = 2 << 20
	IconEdge    = 256
)
