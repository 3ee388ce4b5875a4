package bulk

import "errors"

var (
	ErrResidentNotInSession = errors.New("该入住者不在本次批量录入中")
	ErrCategoryMismatch     = errors.New("草稿类别与批量录入类别不一致")
	ErrNotMealSession       = errors.New("只有饮食批量录入可以设置默认值")
	ErrInvalidWorkflow      = errors.New("无效的录入方式")
	ErrEmptySelection       = errors.New("至少需要选择一位入住者")
)
