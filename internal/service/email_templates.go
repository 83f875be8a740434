package service

import "fmt"

func magicLinkBody(appName, link, supportEmail string) string {
	return fmt.Sprintf(`Hi,

Click the link below to sign in to %s:

%s

This link expires in 10 minutes and can only be used once.

If you didn't request this, you can safely ignore this email.

Questions? Reply or write to %s.

— The %s team
`, appName, link, supportEmail, appName)
}

func welcomeBody(appName, name, appURL, supportEmail string) string {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	return fmt.Sprintf(`%s,

Welcome to %s! Your account is ready.

Set up your first goals and start your daily check-in streak:

%s

Small steps every day add up. We're glad you're here.

Questions? Write to %s.

— The %s team
`, greeting, appName, appURL, supportEmail, appName)
}

func passwordResetBody(appName, link, supportEmail string) string {
	return fmt.Sprintf(`Hi,

We received a request to reset the password on your %s account. Click
the link below to choose a new one:

%s

This link expires in 1 hour and can only be used once.

If you didn't request a reset, your password is unchanged and you can
ignore this email.

Questions? Write to %s.

— The %s team
`, appName, link, supportEmail, appName)
}

func emailChangeBody(appName, link, supportEmail string) string {
	return fmt.Sprintf(`Hi,

You asked to change the email address on your %s account. Confirm the
new address by clicking the link below:

%s

This link expires in 24 hours. If you didn't request this change,
contact us at %s.

— The %s team
`, appName, link, supportEmail, appName)
}
