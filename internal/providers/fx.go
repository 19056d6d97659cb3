package providers

import (
	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	"github.com/smallbiznis/mymart/internal/providers/email"
	"github.com/smallbiznis/mymart/internal/providers/imagestore"
	"github.com/smallbiznis/mymart/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	imagestore.Module,
	pdf.Module,
	fx.Provide(
		func(s *imagestore.FileStore) notificationdomain.ImageStore { return s },
		func(g *pdf.Generator) notificationdomain.InvoiceGenerator { return g },
	),
)
