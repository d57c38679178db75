package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sitewarden/sitecloner/api"
	"github.com/sitewarden/sitecloner/api/cloner"
	"github.com/sitewarden/sitecloner/interfaces"
)

var flagServerAddr *cli.StringFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "Cloning service address to request",
}
var flagFunctionKey *cli.StringFlag = &cli.StringFlag{
	Name:    "function-key",
	EnvVars: []string{"FUNCTION_KEY"},
	Usage:   "Shared access key presented to the service",
}
var flagSourceURL *cli.StringFlag = &cli.StringFlag{
	Name:     "source-url",
	Required: true,
	Usage:    "Site the provisioning template is extracted from",
}
var flagTargetURL *cli.StringFlag = &cli.StringFlag{
	Name:     "target-url",
	Required: true,
	Usage:    "Site the provisioning template is applied to",
}

func main() {
	app := &cli.App{
		Name:  "clonecli",
		Usage: "Trigger site clones on a running cloning service",
		Flags: []cli.Flag{
			flagServerAddr,
			flagFunctionKey,
		},
		Commands: []*cli.Command{
			{
				Name:        "clone",
				Usage:       "copy the source site's provisioning template onto the target site",
				Description: "Blocks until the remote pipeline finishes; large sites can take a long time.",
				Flags: []cli.Flag{
					flagSourceURL,
					flagTargetURL,
				},
				Action: func(cCtx *cli.Context) error {
					c := NewClientConfig(cCtx)
					return c.Clone(
						interfaces.SiteURL(cCtx.String(flagSourceURL.Name)),
						interfaces.SiteURL(cCtx.String(flagTargetURL.Name)),
					)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type Client struct {
	Provider api.CloneProvider
}

func NewClientConfig(cCtx *cli.Context) *Client {
	return &Client{
		Provider: &cloner.CloneClient{
			ServerAddr:  cCtx.String(flagServerAddr.Name),
			FunctionKey: cCtx.String(flagFunctionKey.Name),
		},
	}
}

func (c *Client) Clone(sourceURL, targetURL interfaces.SiteURL) error {
	if err := c.Provider.Clone(sourceURL, targetURL); err != nil {
		return fmt.Errorf("clone failed: %w", err)
	}
	fmt.Printf("cloned %s onto %s\n", sourceURL, targetURL)
	return nil
}
