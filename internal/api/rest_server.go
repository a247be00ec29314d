package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-edit/internal/auth"
	"github.com/annel0/voxel-edit/internal/history"
	"github.com/annel0/voxel-edit/internal/logging"
	"github.com/annel0/voxel-edit/internal/middleware"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world"
)

// RestServer REST API команд правки мира
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	operators  *auth.MemoryOperatorRepo
	issuer     *auth.TokenIssuer
	executor   *voxel.Executor
	history    *history.Service
	worlds     *world.Manager
	loop       *world.TickLoop
	metrics    *ServerMetrics
	logger     *logging.Logger
	timeout    time.Duration
	maxLines   int
}

// Config содержит зависимости REST сервера
type Config struct {
	Port      string // адрес для запуска, например ":8088"
	Operators *auth.MemoryOperatorRepo
	Issuer    *auth.TokenIssuer
	Executor  *voxel.Executor
	History   *history.Service
	Worlds    *world.Manager
	Loop      *world.TickLoop // поток мира; все правки идут через него

	Registerer prometheus.Registerer // nil: регистр по умолчанию
	Gatherer   prometheus.Gatherer   // nil: регистр по умолчанию

	// RequestTimeout ограничивает ожидание потока мира
	RequestTimeout time.Duration
	// HistoryLines верхняя граница count для /api/voxel/history
	HistoryLines int
}

// NewRestServer создаёт REST сервер
func NewRestServer(config Config) (*RestServer, error) {
	switch {
	case config.Operators == nil, config.Issuer == nil:
		return nil, errors.New("api: не заданы операторы или выпуск токенов")
	case config.Executor == nil, config.History == nil:
		return nil, errors.New("api: не заданы исполнитель правок или история")
	case config.Worlds == nil, config.Loop == nil:
		return nil, errors.New("api: не заданы измерения или поток мира")
	}
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if config.HistoryLines <= 0 || config.HistoryLines > history.MaxHistoryLines {
		config.HistoryLines = history.MaxHistoryLines
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel_rest"))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("voxel_rest", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	rs := &RestServer{
		router:    router,
		operators: config.Operators,
		issuer:    config.Issuer,
		executor:  config.Executor,
		history:   config.History,
		worlds:    config.Worlds,
		loop:      config.Loop,
		metrics:   NewServerMetrics(),
		logger:    logging.GetComponentLogger("api"),
		timeout:   config.RequestTimeout,
		maxLines:  config.HistoryLines,
	}
	rs.httpServer = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")

	// Аутентификация (без JWT защиты)
	api.POST("/auth/login", rs.handleLogin)

	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		protected.GET("/stats", rs.handleStats)

		v := protected.Group("/voxel")
		v.POST("/clean", rs.handleClean)
		v.POST("/room", rs.handleRoom)
		v.POST("/replace", rs.handleReplace)
		v.POST("/shape", rs.handleShape)
		v.POST("/preview", rs.handlePreview)
		v.POST("/undo", rs.handleUndo)
		v.POST("/redo", rs.handleRedo)
		v.GET("/history", rs.handleHistory)
		v.GET("/help", rs.handleHelp)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler http.Handler сервера (тесты, встраивание)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// LoginRequest запрос на вход
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse ответ на вход
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	ActorID string `json:"actor_id,omitempty"`
}

// GenericResponse общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handleLogin выдаёт JWT оператору
func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Message: "Неверный формат запроса"})
		return
	}

	op, err := rs.operators.ValidateCredentials(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserNotFound) {
			rs.logger.Info("Неудачный вход: %s", req.Username)
			c.JSON(http.StatusUnauthorized, LoginResponse{Message: "Неверное имя пользователя или пароль"})
			return
		}
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Внутренняя ошибка сервера"})
		return
	}

	token, err := rs.issuer.Issue(op)
	if err != nil {
		rs.logger.Error("Ошибка генерации токена для %s: %v", op.Username, err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Ошибка генерации токена"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Message: "Успешная авторизация",
		ActorID: op.ActorID.String(),
	})
}

// handleStats статистика процесса, измерений и потока мира
func (rs *RestServer) handleStats(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	dims := make([]gin.H, 0)
	for _, id := range rs.worlds.Dimensions() {
		w, _ := rs.worlds.Get(id)
		minY, maxY := w.Bounds()
		dims = append(dims, gin.H{
			"id":            id,
			"mutable":       w.Mutable(),
			"min_y":         minY,
			"max_y":         maxY,
			"loaded_chunks": w.LoadedChunks(),
			"items":         len(w.Items()),
		})
	}

	actor := actorFrom(c)
	undo, redo := rs.history.Sizes(c.Request.Context(), actor)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data: gin.H{
			"server": gin.H{
				"uptime":      rs.metrics.GetUptime(),
				"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
				"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
				"ticks":       rs.loop.Ticks(),
				"server_time": time.Now().Unix(),
			},
			"memory_details": rs.metrics.GetDetailedMemoryStats(),
			"dimensions":     dims,
			"history": gin.H{
				"persistent": rs.history.Persistent(),
				"undo":       undo,
				"redo":       redo,
			},
		},
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("REST API слушает %s", rs.httpServer.Addr)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.httpServer.Shutdown(ctx)
}
