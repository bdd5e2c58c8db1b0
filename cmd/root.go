package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/haggle/internal/config"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configFile string
	v := config.New(config.HomeDir())
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "haggle",
		Short:         "haggle: an autonomous seller negotiation agent",
		Long:          "haggle runs a seller agent that reads buyer messages, prices offers against a utility profile and answers with accepts, rejects or counteroffers before the round clock runs out.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadApp(cmd, v, configFile, app)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: $HOME/.haggle/config.toml)")
	flags.Int("level", 1, "Log verbosity: 1 warnings, 2 info, 3 debug")
	flags.Bool("polite", false, "Only answer messages addressed to this agent")
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("level"))
	_ = v.BindPFlag(config.KeyAgentPolite, flags.Lookup("polite"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app, v),
		newQuoteCmd(app),
		newClassifyCmd(app),
		newCredentialsCmd(app),
		newProfileCmd(),
	)

	return rootCmd
}

func loadApp(cmd *cobra.Command, v *viper.Viper, configFile string, target *app) error {
	cfg, err := config.Load(v, config.LoadOptions{ConfigFile: configFile, HomeDir: config.HomeDir()})
	if err != nil {
		return err
	}

	wired, err := wireApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	*target = *wired
	return nil
}
