package observability

const (
	MUsecaseRequests MetricKey = "usecase_requests_total"
	MUsecaseDuration MetricKey = "usecase_duration_seconds"
	MEventPublish    MetricKey = "event_publish_total"
	MStockSoldOut    MetricKey = "stock_sold_out_total"
	MHTTPRequests    MetricKey = "http_requests_total"
	MHTTPDuration    MetricKey = "http_request_duration_seconds"
)
