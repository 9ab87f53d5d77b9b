package cmd

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/facetrace/facetrace/internal/config"
	"github.com/facetrace/facetrace/internal/detect"
	"github.com/facetrace/facetrace/internal/gallery"
	"github.com/facetrace/facetrace/internal/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage the known-face gallery",
	Long: `Administrative gallery operations. The gallery is read-only during
request processing; these commands are the only mutation path.`,
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded gallery records",
	RunE:  runGalleryList,
}

var galleryImportCmd = &cobra.Command{
	Use:   "import <source-dir>",
	Short: "Import face templates from a directory of images",
	Long: `Scan a directory of images, crop the largest detected face in each
and store the crops as gallery templates.

Examples:
  # Import every face found under ./people into the configured gallery
  facetrace gallery import ./people`,
	Args: cobra.ExactArgs(1),
	RunE: runGalleryImport,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryImportCmd)
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	detector := detect.New(detect.DefaultParams())

	store, err := gallery.Load(cfg.Gallery.Dir, detector)
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}

	if store.Count() == 0 {
		fmt.Printf("Gallery at %s is empty\n", cfg.Gallery.Dir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tFILE")
	for _, record := range store.Records() {
		fmt.Fprintf(w, "%s\t%s\n", record.Label, record.Path)
	}
	return w.Flush()
}

func runGalleryImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	detector := detect.New(detect.DefaultParams())
	srcDir := args[0]

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("reading source directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && gallery.AllowedFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		fmt.Println("No supported images found")
		return nil
	}

	if err := os.MkdirAll(cfg.Gallery.Dir, 0o755); err != nil {
		return fmt.Errorf("creating gallery directory: %w", err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Importing faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var imported, skipped int
	for _, name := range files {
		if err := importFace(filepath.Join(srcDir, name), name, cfg.Gallery.Dir, detector); err != nil {
			skipped++
		} else {
			imported++
		}
		bar.Add(1)
	}

	fmt.Printf("\nImported %d faces, skipped %d files\n", imported, skipped)
	return nil
}

// importFace crops the largest detected face out of one source image and
// writes it as a JPEG template into the gallery directory.
func importFace(path, name, galleryDir string, detector *detect.Detector) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	g, err := imaging.Decode(raw)
	if err != nil {
		return err
	}

	regions := detector.Detect(g)
	if len(regions) == 0 {
		return fmt.Errorf("no face detected in %s", name)
	}

	face := imaging.Crop(g, regions[0].Rect())
	out := filepath.Join(galleryDir, gallery.Label(name)+".jpg")

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, face, &jpeg.Options{Quality: 90})
}
