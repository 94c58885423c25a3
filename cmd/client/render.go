package main

import (
	"chat-relay/domain"
	"fmt"
	"time"

	"github.com/gookit/color"
)

// render formats one envelope as a terminal line.
func render(envelope domain.Envelope, colours bool) string {
	at := envelope.At.Local().Format(time.TimeOnly)

	if envelope.Kind == domain.KindSystem {
		line := fmt.Sprintf("[%s] * %s", at, envelope.Body)
		if colours {
			return color.New(color.FgYellow).Render(line)
		}
		return line
	}

	name := envelope.DisplayName
	if colours {
		name = color.New(color.FgCyan, color.OpBold).Render(name)
	}
	return fmt.Sprintf("[%s] %s: %s", at, name, envelope.Body)
}
