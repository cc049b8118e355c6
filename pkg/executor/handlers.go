package executor

import (
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/handlers/booking"
	"github.com/flowprobe/flowprobe/pkg/handlers/calendar"
	"github.com/flowprobe/flowprobe/pkg/handlers/chat"
	"github.com/flowprobe/flowprobe/pkg/handlers/crm"
	"github.com/flowprobe/flowprobe/pkg/handlers/datastore"
	"github.com/flowprobe/flowprobe/pkg/handlers/email"
	"github.com/flowprobe/flowprobe/pkg/handlers/recorder"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// DefaultHandlers builds the full handler table over one invoker, covering
// every member of the closed integration set.
func DefaultHandlers(invoker protocol.Invoker, logger *slog.Logger) map[models.Integration]protocol.IntegrationHandler {
	table := make(map[models.Integration]protocol.IntegrationHandler)

	for _, handler := range []protocol.IntegrationHandler{
		crm.NewHandler(invoker, logger),
		calendar.NewHandler(invoker, logger),
		email.NewHandler(invoker, logger),
		chat.NewHandler(invoker, logger),
		booking.NewHandler(invoker, logger),
		recorder.NewHandler(invoker, logger),
		datastore.NewHandler(invoker, logger),
	} {
		table[handler.Integration()] = handler
	}

	return table
}
