package internal

import (
	"net/http"
	"receiptd/internal/controllers"
	"receiptd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, issuerController *controllers.IssuerController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/calculate", http.HandlerFunc(apiController.Calculate))
	routers.Post("/receipts", http.HandlerFunc(apiController.IssueReceipt))
	routers.Get("/receipts/{id:[0-9]+}/document", http.HandlerFunc(apiController.RenderDocument))
	routers.Post("/receipts/{id:[0-9]+}/print", http.HandlerFunc(apiController.PrintReceipt))

	// must precede /issuers/{id}
	routers.Post("/issuers/restore-defaults", http.HandlerFunc(issuerController.RestoreDefaults))
	routers.Get("/issuers", http.HandlerFunc(issuerController.List))
	routers.Post("/issuers", http.HandlerFunc(issuerController.Create))
	routers.Get("/issuers/{id:[0-9]+}", http.HandlerFunc(issuerController.Get))
	routers.Put("/issuers/{id:[0-9]+}", http.HandlerFunc(issuerController.Update))
	routers.Delete("/issuers/{id:[0-9]+}", http.HandlerFunc(issuerController.Delete))

	routers.Get("/history", http.HandlerFunc(apiController.ListHistory))
	routers.Delete("/history", http.HandlerFunc(apiController.ClearHistory))
	routers.Get("/history/{id:[0-9]+}", http.HandlerFunc(apiController.GetHistoryRecord))
	routers.Delete("/history/{id:[0-9]+}", http.HandlerFunc(apiController.DeleteHistoryRecord))

	routers.Get("/postal/{code}", http.HandlerFunc(apiController.LookupPostalCode))
	return routers
}
