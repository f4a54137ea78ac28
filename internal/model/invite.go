package model

// InviteToken 监考员注册邀请码，一次性使用
// swagger:model InviteToken
type InviteToken struct {
	BaseModel
	Code      string `gorm:"size:16;unique;not null" json:"code"`
	CreatedBy string `gorm:"size:100" json:"createdBy"`
	IsUsed    bool   `gorm:"default:false" json:"isUsed"`
	UsedBy    string `gorm:"size:100" json:"usedBy,omitempty"`
}

func (InviteToken) TableName() string {
	return "invite_tokens"
}
