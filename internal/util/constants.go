package util

// ArchiveTimeFormat stamps archived report snapshots.
const ArchiveTimeFormat = "20060102T150405Z"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// gin context keys set by the auth middleware
const (
	ContextUserKey   = "user"
	ContextConfigKey = "config"
)

const MimeJSON = "application/json"
