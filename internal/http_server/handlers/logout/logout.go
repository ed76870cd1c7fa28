package logout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Token string `validate:"required"`
}

type SessionCloser interface {
	Logout(ctx context.Context, tok string) error
}

// New godoc
// @Summary      Выход из системы
// @Description  ## Описание
// @Description  Завершает сессию пользователя: токен, выданный при входе, больше
// @Description  не распознается действием session.
// @Description
// @Description  ### Особенности:
// @Description  - Повторный выход с тем же токеном также возвращает 200
// @Description  - Без хранилища сессий (Redis) запрос ничего не делает
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body  object{action=string,token=string}  true  "Токен сессии"  example({"action": "logout", "token": "q8Yc..."})
// @Success      200  {object}  object{success=bool}  "Успешный выход из системы"  example({"success": true})
// @Failure      400  {object}  object{error=string}  "Токен не передан или некорректный JSON"  example({"error": "field Token is a required field"})
// @Failure      500  {object}  object{error=string}  "Внутренняя ошибка сервера"  example({"error": "Internal error"})
// @Router       /api/auth/logout [post]
func New(
	log *slog.Logger,
	validate *validator.Validate,
	closer SessionCloser,
) func(http.ResponseWriter, *http.Request, models.AuthRequest) {
	return func(w http.ResponseWriter, r *http.Request, body models.AuthRequest) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req := Request{Token: body.Token}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := closer.Logout(ctx, req.Token); err != nil {
			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("user logged out successfully")

		ResponseOK(w, r)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, resp.OK())
}
