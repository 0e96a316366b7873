package main

import "colegio_backend/internal/app"

func main() {
	app.Run()
}
