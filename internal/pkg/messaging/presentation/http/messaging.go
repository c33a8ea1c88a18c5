package http

import (
	"github.com/gin-gonic/gin"

	authport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/port"
	qport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/port"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes mounts the messaging endpoints under the given group.
// Controllers are constructed here, one per endpoint.
func RegisterRoutes(
	g *gin.RouterGroup,
	store repository.MessageStore,
	registry *realtime.Registry,
	verifier authport.Verifier,
	dispatcher *controller.DeliveryDispatcher,
	broadcaster *controller.PresenceBroadcaster,
	queue qport.Client,
	log logging.Logger,
) {
	socketCtl := controller.NewSocketController(store, registry, verifier, dispatcher, broadcaster, log)
	sendCtl := controller.NewSendMessageController(queue)
	historyCtl := controller.NewGetHistoryController(store)
	presenceCtl := controller.NewPresenceController(broadcaster)

	// GET /api/v1/ws -> websocket endpoint for realtime messaging
	g.GET("/ws", socketCtl.Handle())

	// POST /api/v1/messages -> queue a message for background delivery
	g.POST("/messages", sendCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> history
	g.GET("/conversations/:conversationId/messages", historyCtl.Handle())

	// GET /api/v1/presence -> latest roster snapshot
	g.GET("/presence", presenceCtl.Handle())
}
