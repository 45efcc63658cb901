package main

import (
	"github.com/M-505/mitra-da-dhaba-sg/internal/app"
	"github.com/M-505/mitra-da-dhaba-sg/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
