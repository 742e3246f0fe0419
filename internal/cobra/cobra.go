package cobra

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Anthya1104/raid-simulator/internal/blockstore"
	"github.com/Anthya1104/raid-simulator/internal/config"
	"github.com/Anthya1104/raid-simulator/internal/logger"
	"github.com/Anthya1104/raid-simulator/internal/manager"
	"github.com/Anthya1104/raid-simulator/internal/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	storeFile        string
	storeNodes       string
	storeFragmentLen string

	recoverNodes     string
	recoverOutput    string
	recoverWriteback bool

	servePort int
	serveDir  string
)

var rootCmd = &cobra.Command{
	Use:   "app",
	Short: "A base CLI app with Cobra and logrus",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.Info("Hello from the base CLI app!")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.Infof("Version: %s", config.Version)
	},
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a file across the RAID-6 erasure-coded node set",
	Run: func(cmd *cobra.Command, args []string) {
		if storeFile == "" || storeNodes == "" {
			logrus.Error("Please provide --file and --nodes flags")
			return
		}
		fragmentLen, err := manager.ParseFragmentLength(storeFragmentLen)
		if err != nil {
			logrus.Errorf("invalid --fragment-len: %v", err)
			return
		}
		payload, err := os.ReadFile(storeFile)
		if err != nil {
			logrus.Errorf("failed to read %s: %v", storeFile, err)
			return
		}
		nodes, err := dialNodes(storeNodes)
		if err != nil {
			logrus.Errorf("%v", err)
			return
		}
		mgr, err := manager.New(nodes)
		if err != nil {
			logrus.Errorf("%v", err)
			return
		}
		report, err := mgr.Store(context.Background(), payload, filepathBase(storeFile), fragmentLen)
		if err != nil {
			logrus.Errorf("store failed: %v", err)
			return
		}
		logrus.Infof("stored %s across %d stripes (%d node errors)", storeFile, report.TotalStripes, len(report.NodeErrors))
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a file previously stored across the RAID-6 node set",
	Run: func(cmd *cobra.Command, args []string) {
		if recoverNodes == "" {
			logrus.Error("Please provide --nodes flag")
			return
		}
		nodes, err := dialNodes(recoverNodes)
		if err != nil {
			logrus.Errorf("%v", err)
			return
		}
		mgr, err := manager.New(nodes)
		if err != nil {
			logrus.Errorf("%v", err)
			return
		}
		payload, report, err := mgr.Recover(context.Background(), manager.RecoverOptions{Writeback: recoverWriteback})
		if err != nil {
			logrus.Errorf("recover failed: %v", err)
			return
		}
		out := recoverOutput
		if out == "" {
			out = "recovered_" + report.Metadata.OriginalFilename
		}
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			logrus.Errorf("failed to write %s: %v", out, err)
			return
		}
		logrus.Infof("recovered %q (%d bytes) to %s; %d stripe(s) unrecoverable", report.Metadata.OriginalFilename, len(payload), out, len(report.UnrecoverableStripes))
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a storage node server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := logger.InitFileLogger(config.LogLevelInfo, config.LogFilePath); err != nil {
			logrus.Errorf("failed to init file logger, continuing on stderr only: %v", err)
		}
		node := blockstore.NewNode(0)
		srv := &transport.Server{Addr: fmt.Sprintf(":%d", servePort), Store: node}
		logrus.Infof("starting storage node on port %d (data dir %s is unused by the in-memory node)", servePort, serveDir)
		if err := srv.ListenAndServe(); err != nil {
			logrus.Fatalf("server error: %v", err)
		}
	},
}

// dialNodes parses a comma-separated "host:port,host:port,..." list
// into transport clients, requiring exactly config.TotalShards entries.
func dialNodes(addrs string) ([]manager.NodeClient, error) {
	parts := strings.Split(addrs, ",")
	if len(parts) != config.TotalShards {
		return nil, fmt.Errorf("--nodes must list exactly %d addresses, got %d", config.TotalShards, len(parts))
	}
	nodes := make([]manager.NodeClient, len(parts))
	for i, addr := range parts {
		nodes[i] = transport.NewClient(strings.TrimSpace(addr))
	}
	return nodes, nil
}

func filepathBase(p string) string {
	i := strings.LastIndexAny(p, "/\\")
	if i < 0 {
		return p
	}
	return p[i+1:]
}

func InitCLI() *cobra.Command {
	storeCmd.Flags().StringVar(&storeFile, "file", "", "Path to the file to store")
	storeCmd.Flags().StringVar(&storeNodes, "nodes", "", "Comma-separated host:port list, one per stripe slot")
	storeCmd.Flags().StringVar(&storeFragmentLen, "fragment-len", "64KB", "Fragment length (e.g. 64KB, 1MB)")

	recoverCmd.Flags().StringVar(&recoverNodes, "nodes", "", "Comma-separated host:port list, one per stripe slot")
	recoverCmd.Flags().StringVar(&recoverOutput, "output", "", "Output path (default recovered_<original filename>)")
	recoverCmd.Flags().BoolVar(&recoverWriteback, "writeback", false, "Write reconstructed fragments back to nodes that were missing them")

	serveCmd.Flags().IntVar(&servePort, "port", 5001, "TCP port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "data-dir", "", "Reserved for a future persistent node backend")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

func ExecuteCmd() error {

	return InitCLI().Execute()

}
