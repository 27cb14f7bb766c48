package server

import (
	"sync"

	"photo-hunt/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
			return game.IsValidPlayerName(fl.Field().String())
		})
		_ = engine.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
			return game.IsValidTeamName(fl.Field().String())
		})
		_ = engine.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return game.IsValidRole(fl.Field().String())
		})
		_ = engine.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
			_, err := game.ParseDecision(fl.Field().String())
			return err == nil
		})
	})
}
