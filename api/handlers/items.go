package handlers

import (
	"net/http"

	services "github.com/lista-de-compras/shopping-list-services/api/services"
	_ "github.com/lib/pq"
)

func ListItems(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ListItemsService(svc, w, r)
	}
}

func CreateItem(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateItemService(svc, w, r)
	}
}

func GetItem(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetItemService(svc, w, r)
	}
}

func UpdateItem(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateItemService(svc, w, r)
	}
}

func DeleteItem(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteItemService(svc, w, r)
	}
}

func PurgeCompleted(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.PurgeCompletedService(svc, w, r)
	}
}
