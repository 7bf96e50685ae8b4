package dialogue

const welcomeMessage = `Welcome to DishDash OrderBot!

I can help you:
- Discover delicious Nigerian dishes
- Place orders seamlessly
- Process secure payments
- Get food delivered to you

What would you like to do today?`

const promptPhoneMessage = `Let's start your order!

Please provide your phone number:`

const promptLocationMessage = `Great! Now please provide your delivery location:`

const promptInstructionsMessage = `Any special instructions for your order? (e.g., extra spicy, no onions, etc.)

If none, just type 'none'`

const readyMessage = `Perfect! You're all set!

Now you can:
- Ask me about dishes
- Add dishes to your cart with 'add <dish>'
- Type 'checkout' when you're ready to pay

What would you like to do?`

// menuSuffix is appended to retrieval answers for menu-intent queries only.
const menuSuffix = "\n\nWould you like to order any of these dishes? Just tell me what you'd like!"

const retryMessage = `Sorry, I couldn't look that up right now. Please try again.`

const emptyCartMessage = `Your cart is empty. Ask me about our dishes and add some with 'add <dish>' before checking out.`

const confirmedMessageSuffix = `

You will receive a confirmation message shortly.
Your food will be delivered within 30-45 minutes.

Thank you for choosing DishDash!`
