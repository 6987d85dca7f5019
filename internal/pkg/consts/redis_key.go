package consts

const (
	PostEngagementKey    = "post:engagement:"
	PostEngagementVerKey = "post:engagement:ver:"
	PostDirtyKey         = "post:dirty"
	CommentLikeDirtyKey  = "comment:like:dirty"

	// TokenRevokedKey 身份服务登出时写入的 Token 签名
	TokenRevokedKey = "token:revoked:"
)

const (
	PostReconcileLock    = "lock:reconcile:post"
	CommentReconcileLock = "lock:reconcile:comment"
)
