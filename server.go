package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

const storeTimeout = 5 * time.Second

// ============================================================
// Companion Service
// ============================================================

type Service struct {
	store    *DesignStore
	renderer *Renderer
	fonts    *FontBook
	fontDir  string
}

func NewService(store *DesignStore, fonts *FontBook, fontDir string) *Service {
	return &Service{
		store:    store,
		renderer: NewRenderer(fonts),
		fonts:    fonts,
		fontDir:  fontDir,
	}
}

func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

func newApp(cfg ServerConfig, svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "shapeterm",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.CORSOrigin},
	}))

	app.Get("/api/health", svc.Health)

	app.Get("/api/fonts", svc.ListFonts)
	app.Get("/api/fonts/download/:family/:weight", svc.DownloadFont)
	app.Get("/fonts/:file", svc.FontFile)

	app.Post("/api/render", svc.Render)

	app.Get("/api/designs", svc.ListDesigns)
	app.Post("/api/designs", svc.SaveDesign)
	app.Get("/api/designs/:id", svc.GetDesign)
	app.Delete("/api/designs/:id", svc.DeleteDesign)
	app.Get("/api/designs/:id/png", svc.DesignPNG)

	return app
}

func runServer(cfg *Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	store, err := OpenDesignStore(ctx, cfg.Server.DBPath)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	svc := NewService(store, NewFontBook(cfg.FontDirectory), cfg.FontDirectory)
	app := newApp(cfg.Server, svc)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting shapeterm service on %s (env: %s)", addr, cfg.Server.Environment)
	return app.Listen(addr)
}

func jsonError(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// errorHandler writes errors returned by handlers as {"error": ...}. A
// *fiber.Error keeps its status; anything else is a 500.
func errorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return jsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[SERVER] %s %s: %v", c.Method(), c.Path(), err)
	return jsonError(c, http.StatusInternalServerError, "internal error")
}

// ============================================================
// Health & Fonts
// ============================================================

func (s *Service) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Service) ListFonts(c fiber.Ctx) error {
	manifest, err := s.fonts.Manifest()
	if err != nil {
		log.Printf("[FONTS] manifest error: %v", err)
		return jsonError(c, http.StatusInternalServerError, "font directory unavailable")
	}
	return c.JSON(manifest)
}

// fontPath resolves name inside the font directory, refusing anything that
// would escape it.
func (s *Service) fontPath(name string) (string, bool) {
	if s.fontDir == "" || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	path := filepath.Join(s.fontDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func fontContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	}
	return "font/ttf"
}

func (s *Service) FontFile(c fiber.Ctx) error {
	name := c.Params("file")
	path, ok := s.fontPath(name)
	if !ok {
		return jsonError(c, http.StatusNotFound, "font file not found")
	}
	c.Set("Content-Type", fontContentType(name))
	c.Set("Cache-Control", "public, max-age=31536000")
	return c.SendFile(path)
}

func (s *Service) DownloadFont(c fiber.Ctx) error {
	name := fmt.Sprintf("%s-%s.ttf", c.Params("family"), c.Params("weight"))
	path, ok := s.fontPath(name)
	if !ok {
		return jsonError(c, http.StatusNotFound, "font file not found")
	}
	return c.Download(path, name)
}

// ============================================================
// Rendering & Design Library
// ============================================================

func decodeBody(c fiber.Ctx) (Design, error) {
	if len(c.Body()) == 0 {
		return Design{}, errors.New("body required")
	}
	return DecodeDesign(bytes.NewReader(c.Body()))
}

func (s *Service) sendPNG(c fiber.Ctx, d Design) error {
	var buf bytes.Buffer
	if err := s.renderer.EncodePNG(&buf, d); err != nil {
		log.Printf("[RENDER] encode error: %v", err)
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	c.Set("Content-Type", "image/png")
	return c.Send(buf.Bytes())
}

func (s *Service) Render(c fiber.Ctx) error {
	d, err := decodeBody(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid design payload")
	}
	return s.sendPNG(c, d)
}

func (s *Service) ListDesigns(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	list, err := s.store.List(ctx)
	if err != nil {
		log.Printf("[DESIGNS] list error: %v", err)
		return jsonError(c, http.StatusInternalServerError, "failed to list designs")
	}
	return c.JSON(list)
}

func (s *Service) SaveDesign(c fiber.Ctx) error {
	d, err := decodeBody(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid design payload")
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	saved, err := s.store.Put(ctx, d)
	if err != nil {
		log.Printf("[DESIGNS] save error: %v", err)
		return jsonError(c, http.StatusInternalServerError, "failed to save design")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": saved.ID, "name": saved.Name})
}

func (s *Service) lookup(c fiber.Ctx) (Design, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	d, err := s.store.Get(ctx, c.Params("id"))
	if errors.Is(err, ErrDesignNotFound) {
		return Design{}, fiber.NewError(http.StatusNotFound, "design not found")
	}
	if err != nil {
		log.Printf("[DESIGNS] get error: %v", err)
		return Design{}, fiber.NewError(http.StatusInternalServerError, "failed to load design")
	}
	return d, nil
}

func (s *Service) GetDesign(c fiber.Ctx) error {
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

func (s *Service) DesignPNG(c fiber.Ctx) error {
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	return s.sendPNG(c, d)
}

func (s *Service) DeleteDesign(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	err := s.store.Delete(ctx, c.Params("id"))
	if errors.Is(err, ErrDesignNotFound) {
		return jsonError(c, http.StatusNotFound, "design not found")
	}
	if err != nil {
		log.Printf("[DESIGNS] delete error: %v", err)
		return jsonError(c, http.StatusInternalServerError, "failed to delete design")
	}
	return c.SendStatus(http.StatusNoContent)
}
