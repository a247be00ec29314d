package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/eventbus"
	"github.com/annel0/voxel-edit/internal/history"
	"github.com/annel0/voxel-edit/internal/middleware"
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world"
	"github.com/annel0/voxel-edit/internal/world/block"
)

var errUnknownDimension = errors.New("неизвестное измерение")

// FrameRequest положение игрока на момент команды
type FrameRequest struct {
	Dimension string        `json:"dimension"`
	Origin    vec.Vec3      `json:"origin"`
	Facing    vec.Direction `json:"facing"`
	Creative  bool          `json:"creative"`
	Tool      string        `json:"tool,omitempty"`
}

func (r FrameRequest) frame(actor uuid.UUID) voxel.Frame {
	return voxel.Frame{
		Actor:     actor,
		Origin:    r.Origin,
		Facing:    r.Facing,
		Creative:  r.Creative,
		Dimension: r.Dimension,
		Tool:      r.Tool,
	}
}

// CleanRequest очистка коробки перед игроком
type CleanRequest struct {
	FrameRequest
	W     int    `json:"w" binding:"required,min=1"`
	H     int    `json:"h" binding:"required,min=1"`
	D     int    `json:"d" binding:"required,min=1"`
	Shell string `json:"shell,omitempty"` // пусто или air: без оболочки
	Loot  bool   `json:"loot"`
	Force bool   `json:"force"`
}

// RoomRequest комната; пустые пол и потолок берутся из стен
type RoomRequest struct {
	FrameRequest
	W       int    `json:"w" binding:"required,min=1"`
	H       int    `json:"h" binding:"required,min=1"`
	D       int    `json:"d" binding:"required,min=1"`
	Walls   string `json:"walls" binding:"required"`
	Floor   string `json:"floor,omitempty"`
	Ceiling string `json:"ceiling,omitempty"`
	Loot    bool   `json:"loot"`
	Force   bool   `json:"force"`
}

// ReplaceRequest замена блоков в коробке
type ReplaceRequest struct {
	FrameRequest
	W      int               `json:"w" binding:"required,min=1"`
	H      int               `json:"h" binding:"required,min=1"`
	D      int               `json:"d" binding:"required,min=1"`
	From   string            `json:"from" binding:"required"`
	To     string            `json:"to" binding:"required"`
	Mode   voxel.ReplaceMode `json:"mode"`
	Chance int               `json:"chance,omitempty" binding:"omitempty,min=1,max=100"`
	Force  bool              `json:"force"`
}

// ShapeRequest фигура из материала
type ShapeRequest struct {
	FrameRequest
	voxel.ShapeParams
	Kind     string `json:"kind" binding:"required"`
	Material string `json:"material" binding:"required"`
	Hollow   bool   `json:"hollow"`
	Force    bool   `json:"force"`
}

// PreviewRequest контур будущей правки; kind: clean, room, replace или вид фигуры
type PreviewRequest struct {
	FrameRequest
	voxel.ShapeParams
	Kind string `json:"kind" binding:"required"`
}

// ReplayRequest undo/redo; count по умолчанию 1
type ReplayRequest struct {
	FrameRequest
	Count int `json:"count,omitempty" binding:"omitempty,min=1,max=10"`
}

// EditResult результат правки
type EditResult struct {
	Op            string `json:"op"`
	Dimension     string `json:"dimension"`
	Changed       int    `json:"changed"`
	Recorded      bool   `json:"recorded"`
	ShellMeta     string `json:"shell_meta,omitempty"`
	LootItemCount int    `json:"loot_item_count"`
	HasUndo       bool   `json:"has_undo"`
}

// ReplayResult результат undo/redo
type ReplayResult struct {
	Direction string `json:"direction"`
	Requested int    `json:"requested"`
	Restored  int    `json:"restored"`
	Undo      int    `json:"undo"`
	Redo      int    `json:"redo"`
}

// PreviewResult точки контура
type PreviewResult struct {
	Kind   string     `json:"kind"`
	Count  int        `json:"count"`
	Points []vec.Vec3 `json:"points"`
}

// HelpLines краткая справка по командам
var HelpLines = []string{
	"POST /api/voxel/clean   {w,h,d, shell?, loot, force}            очистить коробку перед собой",
	"POST /api/voxel/room    {w,h,d, walls, floor?, ceiling?, loot, force}  комната из блоков",
	"POST /api/voxel/replace {w,h,d, from, to, mode=all|shell|inside, chance=1..100, force}",
	"POST /api/voxel/shape   {kind=box|sphere|cylinder|pyramid, w,h,d|radius|height|base, material, hollow, force}",
	"POST /api/voxel/preview {kind, размеры}                          контур без изменений",
	"POST /api/voxel/undo    {count=1..10}                            откатить последние правки",
	"POST /api/voxel/redo    {count=1..10}                            вернуть откаченные правки",
	"GET  /api/voxel/history?count=1..20                              последние правки (по умолчанию 5)",
	"Все правки принимают dimension, origin {x,y,z}, facing, creative, tool.",
}

func parseBlock(name string) (block.BlockID, error) {
	id, ok := block.Lookup(name)
	if !ok {
		return block.AirBlockID, fmt.Errorf("%w: %q", voxel.ErrInvalidMaterial, name)
	}
	return id, nil
}

// inWorld выполняет fn в потоке мира для измерения dimension
func (rs *RestServer) inWorld(c *gin.Context, dimension string, fn func(ctx context.Context, w *world.World) error) error {
	w, ok := rs.worlds.Get(dimension)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownDimension, dimension)
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()
	// начатая правка доводится до конца вместе с сохранением истории
	return rs.loop.Do(ctx, func() error { return fn(context.WithoutCancel(ctx), w) })
}

// fail переводит ошибку в HTTP ответ
func (rs *RestServer) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, voxel.ErrInvalidSize), errors.Is(err, voxel.ErrInvalidMaterial),
		errors.Is(err, voxel.ErrUnknownShape), errors.Is(err, voxel.ErrInvalidActor):
		status = http.StatusBadRequest
	case errors.Is(err, errUnknownDimension):
		status = http.StatusNotFound
	case errors.Is(err, world.ErrTickLoopStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		rs.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Message: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, GenericResponse{Message: "Неверный формат запроса: " + err.Error()})
}

type editFunc func(ctx context.Context, w *world.World, f voxel.Frame) (*voxel.Action, error)

// runEdit выполняет правку, записывает её в историю и публикует VoxelEdit
func (rs *RestServer) runEdit(c *gin.Context, op string, fr FrameRequest, edit editFunc) {
	actor := actorFrom(c)
	frame := fr.frame(actor)

	var (
		action *voxel.Action
		result EditResult
	)
	err := rs.inWorld(c, fr.Dimension, func(ctx context.Context, w *world.World) error {
		a, err := edit(ctx, w, frame)
		if err != nil {
			return err
		}
		action = a
		result.Recorded = rs.history.Record(ctx, actor, a)
		result.HasUndo = rs.history.HasUndo(ctx, actor)
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}

	result.Op = op
	result.Dimension = action.Dimension
	result.Changed = action.Changed()
	result.ShellMeta = action.ShellMeta
	result.LootItemCount = action.LootItemCount

	if !action.IsEmpty() {
		ev := eventbus.VoxelEditEvent{
			Actor:         actor.String(),
			Op:            op,
			Dimension:     action.Dimension,
			Changed:       action.Changed(),
			ShellMeta:     action.ShellMeta,
			InnerW:        action.InnerW,
			InnerH:        action.InnerH,
			InnerD:        action.InnerD,
			Force:         action.Force,
			Loot:          action.Loot,
			LootItemCount: action.LootItemCount,
			TimestampMs:   action.TimestampMs,
		}
		if err := eventbus.PublishPayload(c.Request.Context(), eventbus.TypeVoxelEdit, middleware.TraceID(c), ev); err != nil {
			rs.logger.Warn("Не удалось опубликовать %s: %v", eventbus.TypeVoxelEdit, err)
		}
	}

	msg := "Ничего не изменено"
	if result.Changed > 0 {
		msg = fmt.Sprintf("Изменено блоков: %d", result.Changed)
	}
	c.JSON(http.StatusOK, GenericResponse{Success: result.Changed > 0, Message: msg, Data: result})
}

func (rs *RestServer) handleClean(c *gin.Context) {
	var req CleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hr := voxel.HollowRequest{W: req.W, H: req.H, D: req.D, Loot: req.Loot, Force: req.Force}
	if req.Shell != "" {
		shell, err := parseBlock(req.Shell)
		if err != nil {
			rs.fail(c, err)
			return
		}
		hr.Shell = &shell
	}
	rs.runEdit(c, "clean", req.FrameRequest, func(ctx context.Context, w *world.World, f voxel.Frame) (*voxel.Action, error) {
		return rs.executor.Hollow(ctx, w, f, hr)
	})
}

func (rs *RestServer) handleRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Floor == "" {
		req.Floor = req.Walls
	}
	if req.Ceiling == "" {
		req.Ceiling = req.Walls
	}
	rr := voxel.RoomRequest{W: req.W, H: req.H, D: req.D, Loot: req.Loot, Force: req.Force}
	var err error
	if rr.Walls, err = parseBlock(req.Walls); err != nil {
		rs.fail(c, err)
		return
	}
	if rr.Floor, err = parseBlock(req.Floor); err != nil {
		rs.fail(c, err)
		return
	}
	if rr.Ceiling, err = parseBlock(req.Ceiling); err != nil {
		rs.fail(c, err)
		return
	}
	rs.runEdit(c, "room", req.FrameRequest, func(ctx context.Context, w *world.World, f voxel.Frame) (*voxel.Action, error) {
		return rs.executor.Room(ctx, w, f, rr)
	})
}

func (rs *RestServer) handleReplace(c *gin.Context) {
	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Chance == 0 {
		req.Chance = 100
	}
	rr := voxel.ReplaceRequest{W: req.W, H: req.H, D: req.D, Mode: req.Mode, Chance: req.Chance, Force: req.Force}
	var err error
	if rr.From, err = parseBlock(req.From); err != nil {
		rs.fail(c, err)
		return
	}
	if rr.To, err = parseBlock(req.To); err != nil {
		rs.fail(c, err)
		return
	}
	rs.runEdit(c, "replace", req.FrameRequest, func(ctx context.Context, w *world.World, f voxel.Frame) (*voxel.Action, error) {
		return rs.executor.Replace(ctx, w, f, rr)
	})
}

func (rs *RestServer) handleShape(c *gin.Context) {
	var req ShapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	kind, err := voxel.ParseShapeKind(req.Kind)
	if err != nil {
		rs.fail(c, err)
		return
	}
	material, err := parseBlock(req.Material)
	if err != nil {
		rs.fail(c, err)
		return
	}
	sr := voxel.ShapeRequest{Kind: kind, Params: req.ShapeParams, Material: material, Hollow: req.Hollow, Force: req.Force}
	rs.runEdit(c, "shape", req.FrameRequest, func(ctx context.Context, w *world.World, f voxel.Frame) (*voxel.Action, error) {
		return rs.executor.Shape(ctx, w, f, sr)
	})
}

// handlePreview возвращает контур без обращения к миру
func (rs *RestServer) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	frame := req.frame(actorFrom(c))
	p := req.ShapeParams

	var points []vec.Vec3
	switch req.Kind {
	case "clean", "room", "replace":
		if err := rs.executor.ValidateBox(p.W, p.H, p.D); err != nil {
			rs.fail(c, err)
			return
		}
		points = slices.Collect(voxel.PreviewBox(frame, p.W, p.H, p.D, req.Kind != "replace"))
	default:
		kind, err := voxel.ParseShapeKind(req.Kind)
		if err != nil {
			rs.fail(c, err)
			return
		}
		if err := rs.executor.ValidateShape(kind, p); err != nil {
			rs.fail(c, err)
			return
		}
		seq, err := voxel.PreviewShape(frame, kind, p)
		if err != nil {
			rs.fail(c, err)
			return
		}
		points = slices.Collect(seq)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Контур: %d точек", len(points)),
		Data:    PreviewResult{Kind: req.Kind, Count: len(points), Points: points},
	})
}

func (rs *RestServer) handleUndo(c *gin.Context) { rs.handleReplay(c, history.DirUndo) }

func (rs *RestServer) handleRedo(c *gin.Context) { rs.handleReplay(c, history.DirRedo) }

func (rs *RestServer) handleReplay(c *gin.Context, dir string) {
	var req ReplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	actor := actorFrom(c)
	result := ReplayResult{Direction: dir, Requested: req.Count}

	err := rs.inWorld(c, req.Dimension, func(ctx context.Context, w *world.World) error {
		if dir == history.DirRedo {
			result.Restored = rs.history.Redo(ctx, actor, w, req.Count)
		} else {
			result.Restored = rs.history.Undo(ctx, actor, w, req.Count)
		}
		result.Undo, result.Redo = rs.history.Sizes(ctx, actor)
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}

	if result.Restored > 0 {
		eventType := eventbus.TypeVoxelUndo
		if dir == history.DirRedo {
			eventType = eventbus.TypeVoxelRedo
		}
		ev := eventbus.VoxelReplayEvent{
			Actor:     actor.String(),
			Dimension: req.Dimension,
			Requested: req.Count,
			Restored:  result.Restored,
		}
		if err := eventbus.PublishPayload(c.Request.Context(), eventType, middleware.TraceID(c), ev); err != nil {
			rs.logger.Warn("Не удалось опубликовать %s: %v", eventType, err)
		}
	}

	msg := "Нечего откатывать"
	if dir == history.DirRedo {
		msg = "Нечего повторять"
	}
	if result.Restored > 0 {
		msg = fmt.Sprintf("Восстановлено блоков: %d", result.Restored)
	}
	c.JSON(http.StatusOK, GenericResponse{Success: result.Restored > 0, Message: msg, Data: result})
}

// handleHistory листинг последних правок актора
func (rs *RestServer) handleHistory(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(history.DefaultListCount)))
	if err != nil || count < 1 || count > rs.maxLines {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Message: fmt.Sprintf("count должен быть от 1 до %d", rs.maxLines),
		})
		return
	}

	listing := rs.history.List(c.Request.Context(), actorFrom(c), count)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: listing.Lines()[0],
		Data: gin.H{
			"entries": listing.Entries,
			"total":   listing.Total,
			"lines":   listing.Lines(),
		},
	})
}

func (rs *RestServer) handleHelp(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Команды правки", Data: HelpLines})
}
