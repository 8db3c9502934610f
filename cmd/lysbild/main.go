package main

import (
	"flag"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/mkerell/lysbild/pkg/lysbild"
)

var rootCmd = &cobra.Command{
	Use:   "lysbild",
	Short: "Static photography portfolio asset builder",
	Long: `lysbild converts gallery source directories into resized JPEG
variants with a per-gallery manifest, and keeps the gallery entries of
the site configuration in sync with what it finds on disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(buildCmd, serveCmd)
}

// initConfig wires the optional .lysbild.yml config file and LYSBILD_*
// environment overrides under the flag values.
func initConfig() {
	viper.SetConfigName(".lysbild")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("LYSBILD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	viper.SetDefault("quality", lysbild.DefaultQuality)

	if err := viper.ReadInConfig(); err == nil {
		klog.Infof("using config file %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		klog.Exitf("%v", err)
	}
}
