package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rs/zerolog"

	"github.com/PatrickOgilvie/honertia/config"
	"github.com/PatrickOgilvie/honertia/core/dispatch"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the resolved route table",
	Long: `Print every route the server would register, with the native router
pattern and the model bindings each placeholder declares.`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Build the route table without touching the database: bindings are
	// derived at registration time, not resolution time.
	reg := dispatch.New(dispatch.Config{
		Schema: cfg.SchemaMap(),
		Logger: zerolog.Nop(),
	})
	registerRoutes(reg)
	registerResourceRoutes(reg, cfg)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATTERN\tBINDINGS")
	for _, rt := range reg.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rt.Method, rt.Pattern, describeBindings(rt))
	}
	return w.Flush()
}

// describeBindings renders a route's bindings as "param -> collection.column".
func describeBindings(rt dispatch.RouteInfo) string {
	if len(rt.Bindings) == 0 {
		return "-"
	}
	out := ""
	for i, b := range rt.Bindings {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s -> %s.%s", b.Param, b.Collection, b.Column)
	}
	return out
}
