package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"roboteamup/internal/config"
	"roboteamup/internal/service"
	"roboteamup/internal/store"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	importInput := importCmd.String("input", "", "Snapshot file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	workbook, err := store.OpenWorkbook(cfg.WorkbookPath)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer workbook.Close()

	if err := workbook.EnsureTables(store.Tables()); err != nil {
		log.Fatalf("Failed to prepare workbook tables: %v", err)
	}

	backupService := service.NewBackupService(store.New(workbook), cfg.BackupDir)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		path, err := backupService.Export()
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		info, _ := os.Stat(path)
		log.Printf("Export complete: %s (%.2f KB)", path, float64(info.Size())/1024)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if _, err := os.Stat(*importInput); os.IsNotExist(err) {
			log.Fatalf("Input file does not exist: %s", *importInput)
		}
		if err := backupService.Import(*importInput); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Println("Import complete")

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  backup export              Write a snapshot to the backup directory")
	fmt.Println("  backup import -input FILE  Replace table contents from a snapshot")
}
