package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weillium/ai-portfolio/store"
)

func TestDefaultState(t *testing.T) {
	tests := []struct {
		name      string
		agentType store.AgentType
		config    *AgentConfig
		encoded   string
	}{
		{
			name:      "chat starts with an empty transcript",
			agentType: store.AgentTypeChat,
			encoded:   `{"messages":[]}`,
		},
		{
			name:      "form seeds values from configured fields",
			agentType: store.AgentTypeForm,
			config: &AgentConfig{Fields: []FormField{
				{Name: "city", DefaultValue: "Seattle"},
				{Name: "notes"},
			}},
			encoded: `{"values":{"city":"Seattle","notes":""}}`,
		},
		{
			name:      "form without config has empty values",
			agentType: store.AgentTypeForm,
			encoded:   `{"values":{}}`,
		},
		{
			name:      "workflow starts with empty nodes and edges",
			agentType: store.AgentTypeWorkflow,
			encoded:   `{"nodes":[],"edges":[]}`,
		},
		{
			name:      "custom starts empty",
			agentType: store.AgentTypeCustom,
			encoded:   `{}`,
		},
		{
			name:      "unknown type falls back to the custom shape",
			agentType: store.AgentType("spreadsheet"),
			encoded:   `{}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := DefaultState(tt.agentType, tt.config)
			encoded, err := EncodeState(state)
			require.NoError(t, err)
			require.JSONEq(t, tt.encoded, encoded)
		})
	}
}

func TestDecodeState(t *testing.T) {
	t.Run("round trips a chat transcript", func(t *testing.T) {
		chat := &ChatState{Messages: []ChatMessage{
			{ID: "m1", Role: "user", Content: "hello", CreatedAt: "2026-01-01T00:00:00Z"},
		}}
		encoded, err := EncodeState(chat)
		require.NoError(t, err)

		decoded, err := DecodeState(store.AgentTypeChat, encoded)
		require.NoError(t, err)
		require.Equal(t, chat, decoded)
	})

	t.Run("empty blob decodes to the default state", func(t *testing.T) {
		decoded, err := DecodeState(store.AgentTypeWorkflow, "")
		require.NoError(t, err)
		workflow, ok := decoded.(*WorkflowState)
		require.True(t, ok)
		require.Empty(t, workflow.Nodes)
		require.Empty(t, workflow.Edges)
	})

	t.Run("missing collections are backfilled", func(t *testing.T) {
		decoded, err := DecodeState(store.AgentTypeChat, `{}`)
		require.NoError(t, err)
		chat, ok := decoded.(*ChatState)
		require.True(t, ok)
		require.NotNil(t, chat.Messages)

		decoded, err = DecodeState(store.AgentTypeForm, `{}`)
		require.NoError(t, err)
		form, ok := decoded.(*FormState)
		require.True(t, ok)
		require.NotNil(t, form.Values)
	})

	t.Run("unknown type decodes as custom", func(t *testing.T) {
		decoded, err := DecodeState(store.AgentType("spreadsheet"), `{"cells":[1,2]}`)
		require.NoError(t, err)
		custom, ok := decoded.(CustomState)
		require.True(t, ok)
		require.Contains(t, custom, "cells")
	})

	t.Run("malformed blob is an error", func(t *testing.T) {
		_, err := DecodeState(store.AgentTypeChat, `{"messages":`)
		require.Error(t, err)
	})
}

func TestParseAgentConfig(t *testing.T) {
	config, err := ParseAgentConfig("")
	require.NoError(t, err)
	require.Empty(t, config.SystemPrompt)

	config, err = ParseAgentConfig(`{"system_prompt":"be terse","fields":[{"name":"city","required":true}],"component":"WeatherVisualizer","submitFunction":"save-to-crm"}`)
	require.NoError(t, err)
	require.Equal(t, "be terse", config.SystemPrompt)
	require.Len(t, config.Fields, 1)
	require.True(t, config.Fields[0].Required)
	require.Equal(t, "WeatherVisualizer", config.Component)
	require.Equal(t, "save-to-crm", config.SubmitFunction)

	_, err = ParseAgentConfig(`{"fields":`)
	require.Error(t, err)
}
