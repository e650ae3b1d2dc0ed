package dto

// RegisterDTO 注册
type RegisterDTO struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Gender   string `json:"gender" validate:"required,max=16"`
	Age      int    `json:"age" validate:"gte=0,lte=150"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
