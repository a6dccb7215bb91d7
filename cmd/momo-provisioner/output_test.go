package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() result {
	return result{
		UserID:      testUserID,
		AccessToken: "T1",
		TokenType:   "access_token",
		ExpiresIn:   3600,
	}
}

func TestPrintResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "json", sampleResult()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "T1", got["access_token"])
	assert.NotContains(t, got, "api_key")
}

func TestPrintResultYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "YAML", sampleResult()))

	var got result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleResult(), got)
}

func TestPrintResultText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "text", sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "User ID:      "+testUserID)
	assert.Contains(t, out, "Access token: T1")
	assert.Contains(t, out, "Expires in:   3600s")
	assert.NotContains(t, out, "API key")
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput("json"))
	assert.NoError(t, validateOutput("Text"))
	assert.Error(t, validateOutput("xml"))
}
