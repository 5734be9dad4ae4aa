package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-monitor-mcp/internal/imaging"
	"github.com/ironsheep/ocr-monitor-mcp/internal/server"
)

var (
	recLanguage   string
	recRegion     string
	recRegionName string
	recPreprocess bool
	recScale      float64
	recChars      bool
	recAnnotate   string
	recSnapshot   string
	recTextOnly   bool
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize the text in an image file",
	Long: `Recognize the text in an image file and print the words, lines and text.

Examples:
  ocr-monitor-mcp recognize page.png --text
  ocr-monitor-mcp recognize page.png --region 0,0,800,200 --language eng+deu
  ocr-monitor-mcp recognize page.png --region-name top-half --scale 2
  ocr-monitor-mcp recognize page.png --annotate boxes.png --snapshot page.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		a := server.RecognizeArgs{
			Path:         args[0],
			Language:     recLanguage,
			RegionName:   recRegionName,
			Scale:        recScale,
			IncludeChars: recChars,
			Annotate:     recAnnotate != "",
		}
		if recRegion != "" {
			r, err := imaging.ParseRegion(recRegion)
			if err != nil {
				return err
			}
			a.Region = &r
		}
		if cmd.Flags().Changed("preprocess") {
			a.Preprocess = &recPreprocess
		}

		res, err := e.srv.RecognizeFile(cmd.Context(), a)
		if err != nil {
			return err
		}

		if recSnapshot != "" {
			data, err := json.Marshal(res.Result.Snapshot)
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			if err := os.WriteFile(recSnapshot, data, 0o644); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
		}

		if res.Annotated != nil {
			png, err := base64.StdEncoding.DecodeString(res.Annotated.ImageBase64)
			if err != nil {
				return fmt.Errorf("failed to decode annotated image: %w", err)
			}
			if err := os.WriteFile(recAnnotate, png, 0o644); err != nil {
				return fmt.Errorf("failed to write annotated image: %w", err)
			}
			res.Annotated.ImageBase64 = ""
		}

		if res.Result.Stats.Truncated {
			e.logger.Warn("output truncated: monitor buffer full",
				"dropped", res.Result.Stats.Dropped)
		}

		if recTextOnly {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Result.Text)
			return err
		}
		return output(cmd.OutOrStdout(), res)
	},
}

func init() {
	f := recognizeCmd.Flags()
	f.StringVarP(&recLanguage, "language", "l", "", "Tesseract languages, e.g. eng+deu (default: engine.language)")
	f.StringVar(&recRegion, "region", "", "only recognize x1,y1,x2,y2")
	f.StringVar(&recRegionName, "region-name", "", "only recognize a named region: top-left, top-half, center, ...")
	f.BoolVar(&recPreprocess, "preprocess", false, "grayscale, contrast and auto-invert first (default: preprocess.enabled)")
	f.Float64Var(&recScale, "scale", 0, "enlarge the image before recognition; implies --preprocess")
	f.BoolVar(&recChars, "chars", false, "include per-character events")
	f.StringVar(&recAnnotate, "annotate", "", "write the image with word boxes drawn on it to this PNG file")
	f.StringVar(&recSnapshot, "snapshot", "", "write the monitor buffer snapshot to this JSON file")
	f.BoolVar(&recTextOnly, "text", false, "print only the reconstructed text")
	recognizeCmd.MarkFlagsMutuallyExclusive("region", "region-name")
}
