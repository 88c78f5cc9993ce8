package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/config"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/database"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/middleware"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/repository"
	routes "github.com/AgusMolinaCode/ZEC_Tracker.git/internal/server"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/services"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/widget"
)

var (
	pageFlag string
	portFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "zec-tracker",
		Short:        "Tracker de precio de Zcash en vivo",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVar(&pageFlag, "page", "", "archivo HTML con las secciones (por defecto la página embebida)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Inicia el servidor HTTP y el refresco periódico",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&portFlag, "port", "", "puerto HTTP (pisa PORT)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	sectionsCmd := &cobra.Command{
		Use:   "sections",
		Short: "Lista las secciones encontradas en la página y su configuración",
		RunE:  runSections,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Hace un único refresco de todas las secciones e imprime el HTML",
		RunE:  runRender,
	}

	var subject string
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Genera un token de administración firmado con ADMIN_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := middleware.GenerateAdminToken(cfg.AdminJWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&subject, "subject", "admin", "sujeto del token")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "validez del token")

	rootCmd.AddCommand(serveCmd, sectionsCmd, renderCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig carga .env, lee el entorno y aplica los flags
func loadConfig() (config.Config, error) {
	config.LoadEnvFile()

	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	if pageFlag != "" {
		cfg.PagePath = pageFlag
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}

	config.SetupLogger(cfg.LogLevel)
	return cfg, nil
}

func newManager(cfg config.Config, page *widget.Page, recorder services.SnapshotRecorder, hub *services.Hub) *services.TrackerManager {
	opts := services.ManagerOptions{
		Fetcher:   services.NewPriceClient(cfg.HTTPTimeout, cfg.Provider),
		Formatter: widget.NewFormatter(cfg.Language(), cfg.Location()),
		Recorder:  recorder,
	}
	if hub != nil {
		opts.Broadcaster = hub
	}
	return services.NewTrackerManager(page, opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	page, err := widget.LoadPage(cfg.PagePath)
	if err != nil {
		return fmt.Errorf("error al cargar la página: %w", err)
	}

	// Inicializar base de datos solo si se pidió historial
	var snapshots *repository.SnapshotRepository
	var recorder services.SnapshotRecorder
	if cfg.StoreEnabled() {
		if err := database.InitDB(cfg.DBDriver, cfg.DBDSN); err != nil {
			return fmt.Errorf("error al inicializar la base de datos: %w", err)
		}
		defer database.DB.Close()

		snapshots = repository.NewSnapshotRepository(database.DB)
		recorder = snapshots
	}

	hub := services.NewHub()
	manager := newManager(cfg, page, recorder, hub)

	// Iniciar el refresco de precios
	manager.Start()
	defer manager.Stop()

	// Hacer disponibles las instancias para los handlers
	middleware.InitTrackers(page, manager, hub, snapshots, cfg.AllowedOrigins)

	router := gin.Default()

	// Configurar CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	routes.RegisterRoutes(router, cfg.AdminJWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Servidor escuchando en :%s", cfg.Port)
		errCh <- router.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error al iniciar el servidor: %w", err)
	case <-ctx.Done():
		log.Info("Señal recibida, deteniendo el servidor")
		return nil
	}
}

func runSections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	page, err := widget.LoadPage(cfg.PagePath)
	if err != nil {
		return fmt.Errorf("error al cargar la página: %w", err)
	}

	sections, skipped := page.Discover()

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Moneda", "Intervalo", "Proveedor", "Estado"})
	for _, s := range sections {
		state := "ok"
		if err := s.Validate(); err != nil {
			state = err.Error()
		}
		table.Append([]string{
			s.ID,
			s.Config.Currency,
			strconv.Itoa(int(s.Config.EffectiveInterval() / time.Second)),
			s.Config.Provider,
			state,
		})
	}
	for _, id := range skipped {
		table.Append([]string{id, "", "", "", "omitida: sin campo de precio"})
	}
	table.Render()
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	page, err := widget.LoadPage(cfg.PagePath)
	if err != nil {
		return fmt.Errorf("error al cargar la página: %w", err)
	}

	manager := newManager(cfg, page, nil, nil)
	manager.RefreshAll(cmd.Context())

	return page.Render(cmd.OutOrStdout())
}
