package session

// LoginInstructions explains how to capture the session cookies from a
// browser. Shown by the auth login command; the login itself happens
// out-of-band in the browser.
const LoginInstructions = `To capture your session cookies:

  1. Log into bilibili.com in your browser
  2. Open Developer Tools (F12)
  3. Go to Application/Storage > Cookies > https://www.bilibili.com
  4. Copy the values of these cookies:
       SESSDATA     - the session cookie
       bili_jct     - the CSRF token
       DedeUserID   - your numeric account ID

Never share these values or the files that store them; together they grant
full access to your account.`
