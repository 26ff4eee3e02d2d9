package main

import (
	_ "webinar_billing/docs"
	"webinar_billing/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Webinar Billing API
// @version         1.0
// @description     Cashfree payment bridge for webinar registrations backed by DynamoDB.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

func main() {
	routes.Run()
}
