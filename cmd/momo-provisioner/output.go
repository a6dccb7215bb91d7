package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type result struct {
	UserID               string `json:"user_id" yaml:"user_id"`
	ProviderCallbackHost string `json:"provider_callback_host,omitempty" yaml:"provider_callback_host,omitempty"`
	TargetEnvironment    string `json:"target_environment,omitempty" yaml:"target_environment,omitempty"`
	APIKey               string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	AccessToken          string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	TokenType            string `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresIn            int    `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
}

func validateOutput(format string) error {
	switch strings.ToLower(format) {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text, json or yaml)", format)
	}
}

func printResult(w io.Writer, format string, r result) error {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return printText(w, r)
	}
}

func printText(w io.Writer, r result) error {
	lines := [][2]string{
		{"User ID", r.UserID},
		{"Callback host", r.ProviderCallbackHost},
		{"Target env", r.TargetEnvironment},
		{"API key", r.APIKey},
		{"Access token", r.AccessToken},
		{"Token type", r.TokenType},
	}
	if r.ExpiresIn > 0 {
		lines = append(lines, [2]string{"Expires in", fmt.Sprintf("%ds", r.ExpiresIn)})
	}

	for _, l := range lines {
		if l[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-13s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}
	return nil
}
