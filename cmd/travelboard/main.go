package main

import (
	"os"

	"github.com/hitoshi/travelboard/internal/app"
)

func main() {
	os.Exit(app.Main())
}
