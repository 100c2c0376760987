//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"receiptd/internal"
	"receiptd/internal/controllers"
	"receiptd/internal/document"
	"receiptd/internal/persistence"
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/postal"
	"receiptd/internal/printing"
	"receiptd/internal/providers"
	"receiptd/internal/services"
	"receiptd/internal/store"
	"receiptd/internal/structures"
)

var storageSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewIDProvider,
	persistence.NewZstdCompressor,
	persistence.NewKeyValueStore,
	store.NewStore,
	wire.Bind(new(interfaces.SnapshotStoreInterface), new(*store.Store)),
	wire.Bind(new(services.IssuerHistoryStore), new(*store.Store)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		storageSet,
		providers.NewInstrumentedCacheProvider,
		persistence.NewScheduler,
		document.NewRegistryFromConfig,
		printing.NewPrinterFromConfig,
		postal.NewClient,
		wire.Bind(new(services.PostalLookupInterface), new(*postal.Client)),
		services.NewReceiptService,
		wire.Bind(new(services.ReceiptServiceInterface), new(*services.ReceiptService)),
		controllers.NewApiController,
		controllers.NewIssuerController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitMaintenance(cfg *structures.CliFlags) (*internal.Maintenance, error) {

	wire.Build(
		storageSet,
		internal.NewMaintenance,
	)

	return nil, nil
}
