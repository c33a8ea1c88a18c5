package v1

import (
	"github.com/gin-gonic/gin"

	authport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/auth/port"
	qport "github.com/angelromerodev/chat-project-sci/internal/infrastructure/queue/port"
	"github.com/angelromerodev/chat-project-sci/internal/infrastructure/realtime"
	"github.com/angelromerodev/chat-project-sci/internal/logging"
	repository "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/persistence/repository/port"
	"github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/presentation/controller"
	httpHandler "github.com/angelromerodev/chat-project-sci/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(
	r *gin.Engine,
	store repository.MessageStore,
	registry *realtime.Registry,
	verifier authport.Verifier,
	dispatcher *controller.DeliveryDispatcher,
	broadcaster *controller.PresenceBroadcaster,
	queue qport.Client,
	log logging.Logger,
) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, store, registry, verifier, dispatcher, broadcaster, queue, log)
}
