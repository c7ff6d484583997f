package op_service

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// PrefixEnvVar returns the env var name of a flag, e.g. PrefixEnvVar("OP_FAUCET", "COOLDOWN").
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// ValidateEnvVars logs all env vars that look like they belong to the service,
// but are not picked up by any of its flags.
func ValidateEnvVars(prefix string, flags []cli.Flag, log log.Logger) {
	for _, envVar := range validateEnvVars(prefix, os.Environ(), cliFlagsToEnvVars(flags)) {
		log.Warn("Unknown env var", "prefix", prefix, "env_var", envVar)
	}
}

func cliFlagsToEnvVars(flags []cli.Flag) map[string]struct{} {
	definedEnvVars := make(map[string]struct{})
	for _, flag := range flags {
		envFlag, ok := flag.(interface {
			GetEnvVars() []string
		})
		if !ok {
			continue
		}
		for _, envVar := range envFlag.GetEnvVars() {
			definedEnvVars[envVar] = struct{}{}
		}
	}
	return definedEnvVars
}

// validateEnvVars returns the env vars with the given prefix that are not defined by any flag.
func validateEnvVars(prefix string, providedEnvVars []string, definedEnvVars map[string]struct{}) []string {
	var out []string
	for _, envVar := range providedEnvVars {
		parts := strings.SplitN(envVar, "=", 2)
		if len(parts) == 0 {
			continue
		}
		key := parts[0]
		if strings.HasPrefix(key, prefix) {
			if _, ok := definedEnvVars[key]; !ok {
				out = append(out, key)
			}
		}
	}
	return out
}
