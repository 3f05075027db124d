// cmd/main.go
package main

import (
	"go-property-api/app"
)

// @title           Property Listing API
// @version         1.0
// @description     Workspace listing API with cookie based sessions and image uploads.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
