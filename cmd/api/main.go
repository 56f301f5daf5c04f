package main

import "invoicer/internal/cli"

// @title           Invoicer API
// @version         1.0
// @description     Creates XLSX invoices from timesheet entries and manages customers, time entries and notifications.
// @host            localhost:8080
// @BasePath        /
func main() {
	cli.Execute()
}
