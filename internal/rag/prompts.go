package rag

import "text/template"

// The prompt templates are fixed; only their field values vary per call.

var ragPrompt = template.Must(template.New("rag").Parse(
	`You are DishDash OrderBot, a helpful assistant for Nigerian food delivery.

Use the following context about Nigerian dishes to answer the question. If you don't know the answer based on the context, say so.

Context: {{.Context}}

Question: {{.Question}}

Please provide:
1. Dish recommendations based on the query
2. Description of the dishes
3. Typical preparation time if available
4. Suggestions for complementary dishes

Answer:`))

// ragPromptData feeds ragPrompt.
type ragPromptData struct {
	Context  string
	Question string
}

var orderSummaryPrompt = template.Must(template.New("order-summary").Parse(
	`Create a clear order summary for the following order:

Customer: {{.CustomerName}}
Phone: {{.PhoneNumber}}
Location: {{.Location}}
Order Items: {{.OrderItems}}
Special Instructions: {{.SpecialInstructions}}

Please format the order as:
ORDER SUMMARY
Customer: {{.CustomerName}}
Phone: {{.PhoneNumber}}
Location: {{.Location}}
Items: {{.OrderItems}}
Instructions: {{.SpecialInstructions}}

Make it professional and easy to read.`))

var operatorAlertPrompt = template.Must(template.New("operator-alert").Parse(
	`NEW ORDER ALERT

Customer: {{.CustomerName}}
Phone: {{.PhoneNumber}}
Location: {{.Location}}

Order Details:
{{.OrderItems}}

Special Instructions: {{.SpecialInstructions}}

Order Total: NGN {{.OrderTotal}}
Payment Status: {{.PaymentStatus}}

Please prepare this order immediately!`))
