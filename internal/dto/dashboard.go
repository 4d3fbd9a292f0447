package dto

// StatusCountsResponse 看板计数
// Counts 覆盖完整状态词汇表（缺失补 0），Tiles 为看板卡片
type StatusCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Tiles  DashboardTiles   `json:"tiles"`
}

// DashboardTiles 看板卡片
type DashboardTiles struct {
	PendingReviews int64 `json:"pending_reviews"`
	Approved       int64 `json:"approved"`
	AwaitingDSC    int64 `json:"awaiting_dsc"`
	SentToAdmin    int64 `json:"sent_to_admin"`
}
