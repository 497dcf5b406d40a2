package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/osuushi/delaunay"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

// Command line front end. Points come from stdin as "x y" lines, one group per
// paragraph: a group with a single point is a free point, a longer group is a
// polyline whose segments are constrained. For interpolation the lines carry
// a third value, "x y z".

var (
	app        = kingpin.New("delaunay", "Constrained Delaunay triangulation and scattered data interpolation.")
	configPath = app.Flag("config", "YAML file with default settings.").String()
	kernel     = app.Flag("kernel", "Geometric kernel.").Enum("float", "adaptive")
	locator    = app.Flag("locator", "Point location strategy.").Enum("walk", "tree")
	seed       = app.Flag("seed", "Seed for randomized insertion order and walks.").Int64()
	logLevel   = app.Flag("log-level", "Log level for diagnostics on stderr.").String()

	triangulateCmd = app.Command("triangulate", "Triangulate points and polylines.")
	svgPath        = triangulateCmd.Flag("svg", "Read circles, lines, polylines and polygons from an SVG file instead of stdin.").ExistingFile()
	pngPath        = triangulateCmd.Flag("png", "Render the mesh to a PNG file.").String()
	imageSize      = triangulateCmd.Flag("size", "Image size in pixels.").Int()
	preview        = triangulateCmd.Flag("imgcat", "Show the rendering in the terminal (iTerm only).").Bool()
	dump           = triangulateCmd.Flag("dump", "Print a colored listing of the mesh.").Bool()
	snapshotPath   = triangulateCmd.Flag("snapshot", "Write a snapshot of the mesh to a file.").String()
	compress       = triangulateCmd.Flag("compress", "Compress the snapshot with xz.").Bool()

	interpolateCmd = app.Command("interpolate", "Interpolate \"x y z\" samples on a grid.")
	method         = interpolateCmd.Flag("method", "Interpolant.").Default("natural").Enum("barycentric", "natural", "sibson", "farin")
	gridSize       = interpolateCmd.Flag("grid", "Number of grid points along each axis.").Default("10").Int()
	flatness       = interpolateCmd.Flag("flatness", "Flatness for the sibson interpolant.").Default("1").Float64()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	config, err := LoadConfig(*configPath)
	kingpin.FatalIfError(err, "")
	overrideConfig(&config)
	logger, err := config.Logger()
	kingpin.FatalIfError(err, "")
	opts, err := config.Options(logger)
	kingpin.FatalIfError(err, "")

	switch command {
	case triangulateCmd.FullCommand():
		err = triangulate(config, opts, logger)
	case interpolateCmd.FullCommand():
		err = interpolate(opts, logger)
	}
	kingpin.FatalIfError(err, "%s", command)
}

func overrideConfig(config *Config) {
	if *kernel != "" {
		config.Kernel = *kernel
	}
	if *locator != "" {
		config.Locator = *locator
	}
	if *seed != 0 {
		config.Seed = *seed
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	if *imageSize != 0 {
		config.ImageSize = *imageSize
	}
	if *compress {
		config.Compress = true
	}
}

func triangulate(config Config, opts []delaunay.Option, logger logrus.FieldLogger) error {
	drawing, err := readDrawing()
	if err != nil {
		return err
	}
	logger.WithField("points", len(drawing.Points)).WithField("chains", len(drawing.Chains)).Info("read input")

	t := delaunay.New(opts...)
	if err := t.InsertDrawing(drawing); err != nil {
		return err
	}
	if err := t.SanityCheck(); err != nil {
		return errors.Wrap(err, "mesh check failed")
	}

	fmt.Printf("%v: %d vertices, %d triangles, %d constrained edges\n",
		t.State(), t.NumVertices(), t.NumFaces(), t.NumConstraints())
	for _, f := range t.Faces() {
		corners, err := t.FaceVertices(f)
		if err != nil {
			return err
		}
		var fields []string
		for _, h := range corners {
			p, _ := t.Position(h)
			fields = append(fields, formatFloat(p.X), formatFloat(p.Y))
		}
		fmt.Println(strings.Join(fields, " "))
	}

	if *dump {
		t.Dump(os.Stdout)
	}
	if *pngPath != "" {
		if *preview {
			err = t.Preview(*pngPath, config.ImageSize, os.Stdout)
		} else {
			err = t.SavePNG(*pngPath, config.ImageSize)
		}
		if err != nil {
			return err
		}
	}
	if *snapshotPath != "" {
		return writeSnapshot(t, *snapshotPath, config.Compress)
	}
	return nil
}

func readDrawing() (*delaunay.Drawing, error) {
	if *svgPath != "" {
		file, err := os.Open(*svgPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return delaunay.ParseSVG(file)
	}

	groups, err := readGroups(os.Stdin, 2)
	if err != nil {
		return nil, err
	}
	drawing := &delaunay.Drawing{}
	for _, group := range groups {
		points := make([]delaunay.Point, len(group))
		for i, values := range group {
			points[i] = delaunay.Point{X: values[0], Y: values[1]}
		}
		if len(points) == 1 {
			drawing.Points = append(drawing.Points, points[0])
		} else {
			drawing.Chains = append(drawing.Chains, delaunay.Chain{Points: points})
		}
	}
	return drawing, nil
}

func writeSnapshot(t *delaunay.Triangulation, path string, compress bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Encode(file, compress); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func interpolate(opts []delaunay.Option, logger logrus.FieldLogger) error {
	groups, err := readGroups(os.Stdin, 3)
	if err != nil {
		return err
	}
	t := delaunay.New(opts...)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, group := range groups {
		for _, values := range group {
			p := delaunay.Point{X: values[0], Y: values[1]}
			if _, _, err := t.Insert(p, values[2]); err != nil {
				return err
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if t.State() != delaunay.Triangulated {
		return errors.Wrapf(delaunay.ErrDegenerateInput, "samples do not span an area (%v)", t.State())
	}
	logger.WithField("samples", t.NumVertices()).Info("read samples")

	value := func(v delaunay.Vertex) float64 {
		return v.Data.(float64)
	}
	var interpolant func(delaunay.Point) (float64, bool)
	switch *method {
	case "barycentric":
		interpolant = func(p delaunay.Point) (float64, bool) { return t.Barycentric(p, value) }
	case "natural":
		interpolant = func(p delaunay.Point) (float64, bool) { return t.NaturalNeighbor(p, value) }
	case "sibson":
		gradient := t.EstimateGradients(value)
		interpolant = func(p delaunay.Point) (float64, bool) { return t.SibsonC1(p, *flatness, value, gradient) }
	case "farin":
		gradient := t.EstimateGradients(value)
		interpolant = func(p delaunay.Point) (float64, bool) { return t.FarinC1(p, value, gradient) }
	}

	steps := *gridSize
	if steps < 2 {
		steps = 2
	}
	for i := 0; i < steps; i++ {
		for j := 0; j < steps; j++ {
			p := delaunay.Point{
				X: minX + (maxX-minX)*float64(i)/float64(steps-1),
				Y: minY + (maxY-minY)*float64(j)/float64(steps-1),
			}
			if z, ok := interpolant(p); ok {
				fmt.Printf("%s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(z))
			}
		}
	}
	return nil
}

// Reads paragraphs of whitespace separated numbers, width numbers per line.
func readGroups(in io.Reader, width int) ([][][]float64, error) {
	var groups [][][]float64
	var group [][]float64
	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		// An empty line ends the group
		if text == "" {
			if len(group) > 0 {
				groups = append(groups, group)
				group = nil
			}
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != width {
			return nil, errors.Errorf("line %d: expected %d values, got %d", line, width, len(fields))
		}
		values := make([]float64, width)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			values[i] = v
		}
		group = append(group, values)
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups, errors.Wrap(scanner.Err(), "reading input")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
