package actions

import (
	"strings"

	"github.com/xuzuoyang/gitbro/internal/config"
	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

const secretKey = "github.access_token"

// ShowConfig prints where the config lives and every setting, with the
// access token masked
func ShowConfig(ctx *runtime.Context) error {
	ctx.Splog.Info("Config file: %s", ctx.ConfigPath)

	rows := make([]output.Row, 0, len(ctx.Config.Keys()))
	for _, key := range ctx.Config.Keys() {
		value, err := ctx.Config.Get(key)
		if err != nil {
			return err
		}
		if key == secretKey && value != "" {
			value = maskSecret(value)
		}
		rows = append(rows, output.Row{Key: key, Value: value})
	}
	ctx.Splog.Page(output.RenderRows(rows) + "\n")
	return nil
}

// GetConfig prints the value of one setting
func GetConfig(ctx *runtime.Context, key string) error {
	value, err := ctx.Config.Get(key)
	if err != nil {
		return err
	}
	ctx.Splog.Page(value + "\n")
	return nil
}

// SetConfig changes one setting and saves the config file
func SetConfig(ctx *runtime.Context, key, value string) error {
	if err := ctx.Config.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(ctx.Config, ctx.ConfigPath); err != nil {
		return err
	}
	ctx.Splog.Success("Set %s.", strings.ToLower(key))
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
