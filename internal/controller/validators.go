package controller

import (
	"sync"

	"learnhub_backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
			return model.ResourceType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
			return model.UserRole(fl.Field().String()).Valid()
		})
	})
}
