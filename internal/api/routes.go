package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all panel endpoints onto the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler, hub *WSHub) {
	e.GET("/health", HandleHealth)

	lights := e.Group("/api/lights")
	lights.GET("", h.HandleGetLights)
	lights.GET("/:id", h.HandleGetLight)
	lights.PUT("/:id/state", h.HandleSetLightState)

	groups := e.Group("/api/groups")
	groups.GET("", h.HandleGetGroups)
	groups.POST("", h.HandleCreateGroup)
	groups.GET("/:id", h.HandleGetGroup)
	groups.PUT("/:id", h.HandleUpdateGroup)
	groups.DELETE("/:id", h.HandleDeleteGroup)
	groups.PUT("/:id/action", h.HandleGroupAction)
	groups.PUT("/:id/scenes/:sceneId/activate", h.HandleActivateScene)

	e.GET("/api/scenes", h.HandleGetScenes)

	rules := e.Group("/api/rules")
	rules.GET("", h.HandleGetRules)
	rules.POST("", h.HandleCreateRule)
	rules.GET("/:id", h.HandleGetRule)
	rules.PUT("/:id", h.HandleUpdateRule)
	rules.DELETE("/:id", h.HandleDeleteRule)

	sensors := e.Group("/api/sensors")
	sensors.GET("", h.HandleGetSensors)
	sensors.GET("/:id", h.HandleGetSensor)

	wled := e.Group("/api/wled")
	wled.GET("", h.HandleGetWLEDDevices)
	wled.GET("/:id/state", h.HandleGetWLEDState)
	wled.PUT("/:id/state", h.HandleSetWLEDState)
	wled.PUT("/:id/zones", h.HandleSetWLEDZones)

	yeelight := e.Group("/api/yeelight")
	yeelight.GET("", h.HandleGetYeelightDevices)
	yeelight.GET("/:id/state", h.HandleGetYeelightState)
	yeelight.PUT("/:id/state", h.HandleSetYeelightState)

	ent := e.Group("/api/entertainment")
	ent.GET("/templates", h.HandleGetTemplates)
	ent.GET("/areas", h.HandleGetAreas)
	ent.GET("/areas/:areaId", h.HandleGetArea)
	ent.POST("/:areaId/stream/start", h.HandleStartStreaming)
	ent.POST("/:areaId/stream/stop", h.HandleStopStreaming)

	wiz := ent.Group("/wizard")
	wiz.POST("", h.HandleStartWizard)
	wiz.GET("/:id", h.HandleGetWizard)
	wiz.DELETE("/:id", h.HandleCloseWizard)
	wiz.POST("/:id/next", h.HandleWizardNext)
	wiz.POST("/:id/back", h.HandleWizardBack)
	wiz.PUT("/:id/name", h.HandleWizardSetName)
	wiz.PUT("/:id/template", h.HandleWizardSetTemplate)
	wiz.PUT("/:id/lights", h.HandleWizardSetLights)
	wiz.PUT("/:id/positions/:lightId", h.HandleWizardSetPosition)
	wiz.POST("/:id/arrange", h.HandleWizardArrange)
	wiz.POST("/:id/drag/start", h.HandleWizardDragStart)
	wiz.POST("/:id/drag/move", h.HandleWizardDragMove)
	wiz.POST("/:id/drag/end", h.HandleWizardDragEnd)
	wiz.POST("/:id/create", h.HandleWizardCreate)

	gradients := e.Group("/api/gradients")
	gradients.GET("", h.HandleListGradients)
	gradients.GET("/:id", h.HandleGetGradient)
	gradients.POST("/export", h.HandleExportGradient)
	gradients.POST("/import", h.HandleImportGradient)
	gradients.DELETE("/:id", h.HandleDeleteGradient)

	if hub != nil {
		e.GET("/api/ws", hub.Handle)
	}
}
