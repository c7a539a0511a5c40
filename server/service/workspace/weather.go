package workspace

import (
	"context"
	"math/rand"
	"time"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

var weatherConditions = []string{"Sunny", "Cloudy", "Rainy", "Stormy", "Snowy"}

// weatherVisualizer is the sample custom component. It keeps a small weather
// snapshot under the "weather" key of the custom state.
type weatherVisualizer struct{}

func (v *weatherVisualizer) HandleInput(ctx context.Context, env *ViewEnv, state CustomState, input *InputRequest) (*InputResult, error) {
	weather := v.currentWeather(state)

	switch input.Type {
	case "set_location":
		location, _ := input.Value.(string)
		if location == "" {
			location = input.Content
		}
		if location == "" {
			return nil, wbErrors.InvalidArgument("location is required", nil)
		}
		weather["location"] = location
	case "refresh":
		if _, ok := weather["location"]; !ok {
			weather["location"] = "Seattle, WA"
		}
		weather["temperature"] = rand.Intn(26) + 50
		weather["condition"] = weatherConditions[rand.Intn(len(weatherConditions))]
	default:
		return nil, wbErrors.InvalidArgument("unsupported weather input type", nil)
	}
	weather["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	state["weather"] = weather

	session, err := env.Persist(ctx, state)
	if err != nil {
		return nil, err
	}
	return &InputResult{Session: session, State: state}, nil
}

func (v *weatherVisualizer) currentWeather(state CustomState) map[string]any {
	if existing, ok := state["weather"].(map[string]any); ok {
		return existing
	}
	return map[string]any{}
}
