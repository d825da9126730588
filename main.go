package main

import (
	"log"
	"os"

	"github.com/Shielded-Bit/QABA-sub000/routes"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	listerOnly := utils.RolesMiddleware("agent", "landlord", "admin")

	api := app.Party("/api/v1")

	api.Get("/health", func(ctx iris.Context) {
		utils.Respond(ctx, iris.StatusOK, "ok", nil)
	})

	user := api.Party("/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/verify-otp", routes.VerifyOTP)
		user.Post("/resend-otp", routes.ResendOTP)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/profile", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetProfile)
		user.Patch("/profile", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateProfile)
	}

	property := api.Party("/property")
	{
		property.Get("/", routes.ListProperties)
		property.Get("/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, listerOnly, routes.CreateProperty)
		property.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateProperty)
		property.Post("/{id:uint}/submit", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.SubmitPropertyForReview)
		property.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeleteProperty)

		property.Post("/{id:uint}/images", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UploadPropertyImage)
		property.Post("/{id:uint}/videos", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UploadPropertyVideo)
		property.Post("/{id:uint}/documents", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UploadPropertyDocument)
		property.Get("/{id:uint}/documents", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ListPropertyDocuments)
		property.Delete("/{id:uint}/images/{mediaID:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeletePropertyImage)
		property.Delete("/{id:uint}/videos/{mediaID:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeletePropertyVideo)
		property.Delete("/{id:uint}/documents/{mediaID:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeletePropertyDocument)

		property.Get("/{id:uint}/reviews", routes.ListPropertyReviews)
		property.Post("/{id:uint}/reviews", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateReview)
		property.Post("/{id:uint}/favorite", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ToggleFavorite)
		property.Post("/{id:uint}/meetings", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ScheduleMeeting)
		property.Post("/{id:uint}/payments/offline", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.InitiateOfflinePayment)
	}

	reviews := api.Party("/reviews", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reviews.Get("/mine", routes.GetMyReviews)
		reviews.Delete("/{id:uint}", routes.DeleteReview)
	}

	favorites := api.Party("/favorites", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		favorites.Get("/", routes.ListFavorites)
	}

	meetings := api.Party("/meetings", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		meetings.Get("/mine", routes.ListMyMeetings)
		meetings.Post("/{id:uint}/cancel", routes.CancelMeeting)
	}

	payments := api.Party("/payments")
	{
		payments.Post("/webhook", routes.PaymentWebhook)
		payments.Post("/initiate", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.InitiateOnlinePayment)
		payments.Post("/verify", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.VerifyPayment)
		payments.Get("/history", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.PaymentHistory)
	}

	notifications := api.Party("/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		notifications.Get("/", routes.ListMyNotifications)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
		notifications.Patch("/read-all", routes.MarkAllNotificationsRead)
	}

	analytics := api.Party("/analytics", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		analytics.Get("/agent", utils.RolesMiddleware("agent"), routes.AgentAnalytics)
	}

	jobs := api.Party("/jobs")
	{
		jobs.Get("/", routes.ListJobs)
		jobs.Get("/{id:uint}", routes.GetJob)
		jobs.Post("/{id:uint}/apply", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ApplyToJob)
	}

	blog := api.Party("/blog")
	{
		blog.Get("/", routes.ListBlogPosts)
		blog.Get("/{slug}", routes.GetBlogPost)
	}

	admin := api.Party("/admin", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/role", routes.AdminChangeUserRole)
		admin.Get("/properties", routes.AdminListProperties)
		admin.Post("/properties/{id:uint}/moderate", routes.AdminModerateProperty)
		admin.Get("/reviews", routes.AdminListReviews)
		admin.Post("/reviews/{id:uint}/moderate", routes.AdminModerateReview)
		admin.Post("/documents/{id:uint}/verify", routes.AdminVerifyDocument)
		admin.Get("/payments/offline", routes.AdminListOfflinePayments)
		admin.Post("/payments/offline/{id:uint}/verify", routes.AdminVerifyOfflinePayment)
		admin.Get("/meetings", routes.AdminListMeetings)
		admin.Patch("/meetings/{id:uint}", routes.AdminUpdateMeeting)
		admin.Post("/jobs", routes.CreateJob)
		admin.Patch("/jobs/{id:uint}", routes.UpdateJob)
		admin.Delete("/jobs/{id:uint}", routes.DeleteJob)
		admin.Get("/jobs/{id:uint}/applications", routes.ListJobApplications)
		admin.Post("/blog", routes.CreateBlogPost)
		admin.Patch("/blog/{id:uint}", routes.UpdateBlogPost)
		admin.Delete("/blog/{id:uint}", routes.DeleteBlogPost)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
