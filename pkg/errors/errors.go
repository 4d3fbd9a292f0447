package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录在读取后已被其他请求修改（状态或版本号不匹配）
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrInvalidStatus 写入的状态不在词汇表内，Repository 拒绝落库
var ErrInvalidStatus = errors.New("状态值不在词汇表内")
