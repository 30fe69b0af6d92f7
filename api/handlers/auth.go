package handlers

import (
	"net/http"

	services "github.com/lista-de-compras/shopping-list-services/api/services"
)

func Register(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RegisterService(svc, w, r)
	}
}

func Login(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.LoginService(svc, w, r)
	}
}

func RequestPasswordReset(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RequestPasswordResetService(svc, w, r)
	}
}

func ConfirmPasswordReset(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ConfirmPasswordResetService(svc, w, r)
	}
}
